package importer

import (
	"fmt"
	"path/filepath"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
	"github.com/matsen/artool/internal/pdf"
)

// FromPDF builds a work from the DOI and title found in a PDF.
func FromPDF(path string, lex *lexicon.Lexicon) (*entity.Record, error) {
	meta, err := pdf.ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	return fromMetadata(meta, path, lex)
}

func fromMetadata(meta pdf.Metadata, path string, lex *lexicon.Lexicon) (*entity.Record, error) {
	if meta.IsZero() {
		return nil, fmt.Errorf("no DOI or title found in %s", filepath.Base(path))
	}
	m := entity.MappingInput{
		"doi":   meta.DOI,
		"title": meta.Title,
		"notes": "imported from " + filepath.Base(path),
	}
	return entity.Normalize(identity.Work, m, entity.Generic, lex), nil
}
