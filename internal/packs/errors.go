package packs

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCharacterNotFound = errors.New("character not found")
	ErrUnknownStyle      = errors.New("unknown style")
	ErrNotReady          = errors.New("pack not finished")
)
