package models

import "github.com/google/uuid"

const DateLayout = "2006-01-02"
const TimeLayout = "15:04"

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
