package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				ID:    "job-1",
				Title: "Senior Go Engineer",
			},
			wantErr: nil,
		},
		{
			name: "valid document with only an id",
			doc: &Document{
				ID: "job-2",
			},
			wantErr: nil,
		},
		{
			name: "valid document with empty vector",
			doc: &Document{
				ID:     "job-3",
				Title:  "Designer",
				Vector: nil,
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing id",
			doc: &Document{
				Title: "Untitled",
			},
			wantErr: ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSearchOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    *SearchOptions
		wantErr error
	}{
		{
			name:    "nil options",
			opts:    nil,
			wantErr: nil,
		},
		{
			name:    "defaults",
			opts:    DefaultSearchOptions(),
			wantErr: nil,
		},
		{
			name: "both highlight tags set",
			opts: &SearchOptions{
				Sort:             SortRelevance,
				HitsPerPage:      10,
				HighlightPreTag:  "<em>",
				HighlightPostTag: "</em>",
			},
			wantErr: nil,
		},
		{
			name: "negative page",
			opts: &SearchOptions{
				Sort:        SortRelevance,
				Page:        -1,
				HitsPerPage: 10,
			},
			wantErr: ErrInvalidPage,
		},
		{
			name: "zero hits per page",
			opts: &SearchOptions{
				Sort: SortRelevance,
			},
			wantErr: ErrInvalidHitsPerPage,
		},
		{
			name: "only pre highlight tag",
			opts: &SearchOptions{
				Sort:            SortRelevance,
				HitsPerPage:     10,
				HighlightPreTag: "<em>",
			},
			wantErr: ErrInvalidHighlightTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchOptions(tt.opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("expected error to wrap ErrInvalidOptions, got %v", err)
			}
		})
	}
}
