package usecase

import "strings"

// MessageCatalog holds the reply templates for one language. Recorded wraps
// the match summary, AlreadyCompleted wraps a reference to the match.
type MessageCatalog struct {
	Recorded         string
	Invalid          string
	AlreadyCompleted string
}

var engMessages = MessageCatalog{
	Recorded:         "Thank you, match was recorded as:\n%s",
	Invalid:          "Sorry, I could not understand the message.",
	AlreadyCompleted: "Match %s has already been played.",
}

var finMessages = MessageCatalog{
	Recorded:         "Kiitos, ottelu kirjattiin:\n%s",
	Invalid:          "En ymmärtänyt viestiä, pahoittelut.",
	AlreadyCompleted: "Ottelu %s on jo pelattu.",
}

// MessagesFor returns the reply catalog for a language tag. The league runs
// in Finnish, so anything but an explicit "eng" falls back to Finnish.
func MessagesFor(lang string) MessageCatalog {
	if strings.EqualFold(strings.TrimSpace(lang), "eng") {
		return engMessages
	}
	return finMessages
}
