package i18n

var enUS = map[Code]string{
	"UNKNOWN":                 "An unexpected error occurred.",
	"GAME_ID_REQUIRED":        "A game id is required.",
	"GAME_NOT_FOUND":          "Game {{.game_id}} was not found.",
	"INVALID_PERSISTED_STATE": "The saved round could not be restored.",
	"GENERATOR_EXHAUSTED":     "A round could not be drawn.",
	"OPERATION_UNKNOWN":       "Unknown operation {{.operation}}.",
	"NOT_FOUND":               "The requested record was not found.",
}

var deDE = map[Code]string{
	"UNKNOWN":                 "Ein unerwarteter Fehler ist aufgetreten.",
	"GAME_ID_REQUIRED":        "Eine Spiel-ID ist erforderlich.",
	"GAME_NOT_FOUND":          "Spiel {{.game_id}} wurde nicht gefunden.",
	"INVALID_PERSISTED_STATE": "Die gespeicherte Runde konnte nicht wiederhergestellt werden.",
	"GENERATOR_EXHAUSTED":     "Es konnte keine Runde gezogen werden.",
	"OPERATION_UNKNOWN":       "Unbekannte Rechenart {{.operation}}.",
	"NOT_FOUND":               "Der angeforderte Eintrag wurde nicht gefunden.",
}
