package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Ledger --dir ../domain/snooker --output domain/snooker --outpkg snookermock --filename ledger_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name IDGenerator --dir ../domain/snooker --output domain/snooker --outpkg snookermock --filename id_generator_mock.go
