package handlers

import (
	"photo-gallery/internal/database"
	"photo-gallery/internal/library"
)

type Handlers struct {
	db  *database.Database
	lib *library.Library
}

func New(db *database.Database, lib *library.Library) *Handlers {
	return &Handlers{
		db:  db,
		lib: lib,
	}
}
