// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/notegraph/core"
)

// Hand-written MUS serializers for the persisted record types. Field order is
// the wire format; add new fields at the end only.

var (
	// ContentUnitMUS serializes cached content units.
	ContentUnitMUS = contentUnitSer{}
	// StagingItemMUS serializes staging queue entries.
	StagingItemMUS = stagingItemSer{}

	candidateMUS = candidateSer{}
	stringsMUS   = ord.NewSliceSer[string](ord.String)
)

// MarshalContentUnit serializes a ContentUnit to bytes.
func MarshalContentUnit(unit *core.ContentUnit) []byte {
	bs := make([]byte, ContentUnitMUS.Size(*unit))
	ContentUnitMUS.Marshal(*unit, bs)
	return bs
}

// UnmarshalContentUnit deserializes a ContentUnit from bytes.
func UnmarshalContentUnit(bs []byte) (*core.ContentUnit, error) {
	unit, _, err := ContentUnitMUS.Unmarshal(bs)
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// MarshalStagingItem serializes a StagingItem to bytes.
func MarshalStagingItem(item *core.StagingItem) []byte {
	bs := make([]byte, StagingItemMUS.Size(*item))
	StagingItemMUS.Marshal(*item, bs)
	return bs
}

// UnmarshalStagingItem deserializes a StagingItem from bytes.
func UnmarshalStagingItem(bs []byte) (*core.StagingItem, error) {
	item, _, err := StagingItemMUS.Unmarshal(bs)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type contentUnitSer struct{}

// Size returns the encoded size of a ContentUnit.
func (contentUnitSer) Size(unit core.ContentUnit) int {
	return ord.String.Size(unit.SourceURL) +
		varint.Int64.Size(int64(unit.SourceType)) +
		ord.String.Size(unit.RawText) +
		ord.String.Size(unit.Title) +
		varint.Int64.Size(unit.PublishedAt.UTC().UnixMicro()) +
		varint.Int64.Size(int64(unit.Duration))
}

// Marshal fills bs with an encoded ContentUnit, returning the bytes used.
func (contentUnitSer) Marshal(unit core.ContentUnit, bs []byte) int {
	n := ord.String.Marshal(unit.SourceURL, bs)
	n += varint.Int64.Marshal(int64(unit.SourceType), bs[n:])
	n += ord.String.Marshal(unit.RawText, bs[n:])
	n += ord.String.Marshal(unit.Title, bs[n:])
	n += varint.Int64.Marshal(unit.PublishedAt.UTC().UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(int64(unit.Duration), bs[n:])
	return n
}

// Unmarshal parses an encoded ContentUnit from bs.
func (contentUnitSer) Unmarshal(bs []byte) (core.ContentUnit, int, error) {
	var (
		unit core.ContentUnit
		off  int
	)

	sourceURL, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	sourceType, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	rawText, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	title, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	published, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	duration, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return unit, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	unit.SourceURL = sourceURL
	unit.SourceType = core.SourceType(sourceType)
	unit.RawText = rawText
	unit.Title = title
	unit.PublishedAt = time.UnixMicro(published).UTC()
	unit.Duration = time.Duration(duration)
	return unit, off, nil
}

type stagingItemSer struct{}

// Size returns the encoded size of a StagingItem.
func (stagingItemSer) Size(item core.StagingItem) int {
	return ord.String.Size(item.ID) +
		candidateMUS.Size(item.Candidate) +
		raw.Uint64.Size(math.Float64bits(item.Confidence)) +
		ord.String.Size(string(item.ConflictingWith)) +
		ord.String.Size(item.Reason) +
		varint.Int64.Size(int64(item.State)) +
		varint.Int64.Size(item.CreatedAt.UTC().UnixMicro())
}

// Marshal fills bs with an encoded StagingItem, returning the bytes used.
func (stagingItemSer) Marshal(item core.StagingItem, bs []byte) int {
	n := ord.String.Marshal(item.ID, bs)
	n += candidateMUS.Marshal(item.Candidate, bs[n:])
	n += raw.Uint64.Marshal(math.Float64bits(item.Confidence), bs[n:])
	n += ord.String.Marshal(string(item.ConflictingWith), bs[n:])
	n += ord.String.Marshal(item.Reason, bs[n:])
	n += varint.Int64.Marshal(int64(item.State), bs[n:])
	n += varint.Int64.Marshal(item.CreatedAt.UTC().UnixMicro(), bs[n:])
	return n
}

// Unmarshal parses an encoded StagingItem from bs.
func (stagingItemSer) Unmarshal(bs []byte) (core.StagingItem, int, error) {
	var (
		item core.StagingItem
		off  int
	)

	id, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	candidate, n, err := candidateMUS.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, err
	}
	off += n

	confidence, n, err := raw.Uint64.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	conflicting, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	reason, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	state, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	created, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return item, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	item.ID = id
	item.Candidate = candidate
	item.Confidence = math.Float64frombits(confidence)
	item.ConflictingWith = core.Slug(conflicting)
	item.Reason = reason
	item.State = core.StagingState(state)
	item.CreatedAt = time.UnixMicro(created).UTC()
	return item, off, nil
}

type candidateSer struct{}

// Size returns the encoded size of a CandidateEntity.
func (candidateSer) Size(c core.CandidateEntity) int {
	return varint.Int64.Size(int64(c.Kind)) +
		ord.String.Size(c.Name) +
		ord.String.Size(c.Summary) +
		stringsMUS.Size(c.Aliases) +
		stringsMUS.Size(c.RelatedNames)
}

// Marshal fills bs with an encoded CandidateEntity, returning the bytes used.
func (candidateSer) Marshal(c core.CandidateEntity, bs []byte) int {
	n := varint.Int64.Marshal(int64(c.Kind), bs)
	n += ord.String.Marshal(c.Name, bs[n:])
	n += ord.String.Marshal(c.Summary, bs[n:])
	n += stringsMUS.Marshal(c.Aliases, bs[n:])
	n += stringsMUS.Marshal(c.RelatedNames, bs[n:])
	return n
}

// Unmarshal parses an encoded CandidateEntity from bs.
func (candidateSer) Unmarshal(bs []byte) (core.CandidateEntity, int, error) {
	var (
		c   core.CandidateEntity
		off int
	)

	kind, n, err := varint.Int64.Unmarshal(bs[off:])
	if err != nil {
		return c, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	name, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return c, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	summary, n, err := ord.String.Unmarshal(bs[off:])
	if err != nil {
		return c, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	aliases, n, err := stringsMUS.Unmarshal(bs[off:])
	if err != nil {
		return c, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	related, n, err := stringsMUS.Unmarshal(bs[off:])
	if err != nil {
		return c, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	off += n

	c.Kind = core.EntityKind(kind)
	c.Name = name
	c.Summary = summary
	c.Aliases = aliases
	c.RelatedNames = related
	return c, off, nil
}
