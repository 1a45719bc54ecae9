package core

import (
	"errors"
	"testing"
)

func TestValidateContentUnit(t *testing.T) {
	tests := []struct {
		name    string
		unit    *ContentUnit
		wantErr error
	}{
		{
			name: "valid article",
			unit: &ContentUnit{
				SourceURL:  "https://example.com/post",
				SourceType: SourceTypeArticle,
				RawText:    "some text",
				Title:      "A Post",
			},
			wantErr: nil,
		},
		{
			name:    "nil unit",
			unit:    nil,
			wantErr: ErrInvalidContentUnit,
		},
		{
			name: "empty text",
			unit: &ContentUnit{
				SourceURL:  "https://example.com/post",
				SourceType: SourceTypeArticle,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "invalid source type",
			unit: &ContentUnit{
				SourceURL: "https://example.com/post",
				RawText:   "some text",
			},
			wantErr: ErrInvalidSourceType,
		},
		{
			name: "missing source URL",
			unit: &ContentUnit{
				SourceType: SourceTypePodcast,
				RawText:    "transcript",
			},
			wantErr: ErrInvalidContentUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentUnit(tt.unit)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateContentUnit() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContentUnit() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate *CandidateEntity
		wantErr   error
	}{
		{
			name: "valid concept",
			candidate: &CandidateEntity{
				Kind: KindConcept,
				Name: "Deep Work",
			},
			wantErr: nil,
		},
		{
			name:      "nil candidate",
			candidate: nil,
			wantErr:   ErrInvalidCandidate,
		},
		{
			name: "empty name",
			candidate: &CandidateEntity{
				Kind: KindPerson,
			},
			wantErr: ErrEmptyEntityName,
		},
		{
			name: "invalid kind",
			candidate: &CandidateEntity{
				Name: "Deep Work",
			},
			wantErr: ErrInvalidEntityKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidate(tt.candidate)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCandidate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCandidate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransient(t *testing.T) {
	base := errors.New("connection reset")

	wrapped := Transient(base)
	if !IsTransient(wrapped) {
		t.Error("IsTransient() = false for Transient-wrapped error")
	}
	if !errors.Is(wrapped, base) {
		t.Error("Transient() must preserve the wrapped error for errors.Is")
	}

	if IsTransient(base) {
		t.Error("IsTransient() = true for unwrapped error")
	}
	if IsTransient(nil) {
		t.Error("IsTransient(nil) = true")
	}
	if Transient(nil) != nil {
		t.Error("Transient(nil) must be nil")
	}
}
