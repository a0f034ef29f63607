package domain

import "errors"

// ErrSaveNotFound is returned by save stores when no payload exists for a key.
var ErrSaveNotFound = errors.New("save not found")

// ErrUnknownNode is returned when a node id is not part of the story graph.
var ErrUnknownNode = errors.New("unknown node")

// ErrInvalidStory is returned when a story document cannot be decoded at all.
var ErrInvalidStory = errors.New("invalid story document")
