package domain

import (
	"fmt"

	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// ExtractionError source indisponible ou requête en échec; fatal pour le type d'entité
type ExtractionError struct {
	EntityType sourcedomain.EntityType
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.EntityType, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TransformSkip problème sur un seul enregistrement; l'enregistrement est écarté
type TransformSkip struct {
	EntityType sourcedomain.EntityType
	RecordKey  string
	Reason     string
	Err        error
}

func (e *TransformSkip) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skip %s: %s: %v", e.RecordKey, e.Reason, e.Err)
	}
	return fmt.Sprintf("skip %s: %s", e.RecordKey, e.Reason)
}

func (e *TransformSkip) Unwrap() error { return e.Err }

// LoadChunkError écriture d'un chunk en échec après épuisement des tentatives
type LoadChunkError struct {
	EntityType sourcedomain.EntityType
	Chunk      int
	Size       int
	Attempts   int
	Err        error
}

func (e *LoadChunkError) Error() string {
	return fmt.Sprintf("load %s chunk %d (%d facts) failed after %d attempts: %v",
		e.EntityType, e.Chunk, e.Size, e.Attempts, e.Err)
}

func (e *LoadChunkError) Unwrap() error { return e.Err }

// ConfigurationError configuration invalide, détectée avant toute I/O
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
