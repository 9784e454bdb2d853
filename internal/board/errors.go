package board

import "errors"

// ErrNotFound indicates the referenced record does not exist.
var ErrNotFound = errors.New("board: record not found")

// ErrAlreadyVoted indicates the principal already cast a vote on this record.
var ErrAlreadyVoted = errors.New("board: principal already voted")

// ErrCapabilityMismatch indicates the presented capability is bound to a
// different registry than the one being written.
var ErrCapabilityMismatch = errors.New("board: capability not bound to this registry")

// ErrNotHolder indicates the presenter is not the current capability holder.
var ErrNotHolder = errors.New("board: capability presented by non-holder")
