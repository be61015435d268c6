// Copyright 2025 Poiesic Systems
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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/seeker/core"
)

// Shared serializers for compound field types.
var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
	stringMapMUS    = ord.NewMapSer[string, string](ord.String, ord.String)
	popularityMUS   = ord.NewMapSer[string, uint64](ord.String, varint.Uint64)
)

// timeSer encodes a time.Time as its Unix microsecond count, the resolution
// the engine needs for posted-at ordering.
type timeSer struct{}

// TimeMUS serializes timestamps.
var TimeMUS = timeSer{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type documentSer struct{}

// DocumentMUS serializes core.Document values.
var DocumentMUS = documentSer{}

func (documentSer) Marshal(d core.Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Company, bs[n:])
	n += ord.String.Marshal(d.Location, bs[n:])
	n += ord.String.Marshal(d.Description, bs[n:])
	n += stringSliceMUS.Marshal(d.Requirements, bs[n:])
	n += stringSliceMUS.Marshal(d.Benefits, bs[n:])
	n += ord.String.Marshal(d.Salary, bs[n:])
	n += varint.Int.Marshal(d.ExperienceYears, bs[n:])
	n += ord.String.Marshal(d.CompanySize, bs[n:])
	n += TimeMUS.Marshal(d.PostedAt, bs[n:])
	n += stringMapMUS.Marshal(d.Facets, bs[n:])
	n += float32SliceMUS.Marshal(d.Vector, bs[n:])
	return n
}

func (documentSer) Unmarshal(bs []byte) (d core.Document, n int, err error) {
	var m int
	if d.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if d.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Company, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Location, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Requirements, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Benefits, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Salary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.ExperienceYears, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.CompanySize, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.PostedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Facets, m, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Vector, m, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	return d, n, nil
}

func (documentSer) Size(d core.Document) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Company)
	size += ord.String.Size(d.Location)
	size += ord.String.Size(d.Description)
	size += stringSliceMUS.Size(d.Requirements)
	size += stringSliceMUS.Size(d.Benefits)
	size += ord.String.Size(d.Salary)
	size += varint.Int.Size(d.ExperienceYears)
	size += ord.String.Size(d.CompanySize)
	size += TimeMUS.Size(d.PostedAt)
	size += stringMapMUS.Size(d.Facets)
	size += float32SliceMUS.Size(d.Vector)
	return size
}

func (s documentSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type trieEntrySer struct{}

// TrieEntryMUS serializes TrieEntry values.
var TrieEntryMUS = trieEntrySer{}

func (trieEntrySer) Marshal(e TrieEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.Term, bs)
	n += varint.Uint64.Marshal(e.Freq, bs[n:])
	return n
}

func (trieEntrySer) Unmarshal(bs []byte) (e TrieEntry, n int, err error) {
	var m int
	if e.Term, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if e.Freq, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	return e, n + m, nil
}

func (trieEntrySer) Size(e TrieEntry) int {
	return ord.String.Size(e.Term) + varint.Uint64.Size(e.Freq)
}

func (s trieEntrySer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type historyEntrySer struct{}

// HistoryEntryMUS serializes HistoryEntry values.
var HistoryEntryMUS = historyEntrySer{}

func (historyEntrySer) Marshal(e HistoryEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.Query, bs)
	n += TimeMUS.Marshal(e.Timestamp, bs[n:])
	n += varint.Int.Marshal(e.ResultCount, bs[n:])
	return n
}

func (historyEntrySer) Unmarshal(bs []byte) (e HistoryEntry, n int, err error) {
	var m int
	if e.Query, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if e.Timestamp, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.ResultCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	return e, n + m, nil
}

func (historyEntrySer) Size(e HistoryEntry) int {
	return ord.String.Size(e.Query) + TimeMUS.Size(e.Timestamp) + varint.Int.Size(e.ResultCount)
}

func (s historyEntrySer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// Slice serializers over the struct serializers above.
var (
	documentSliceMUS     = ord.NewSliceSer[core.Document](DocumentMUS)
	trieEntrySliceMUS    = ord.NewSliceSer[TrieEntry](TrieEntryMUS)
	historyEntrySliceMUS = ord.NewSliceSer[HistoryEntry](HistoryEntryMUS)
)

type snapshotSer struct{}

// SnapshotMUS serializes full engine snapshots.
var SnapshotMUS = snapshotSer{}

func (snapshotSer) Marshal(s Snapshot, bs []byte) (n int) {
	n = documentSliceMUS.Marshal(s.Documents, bs)
	n += trieEntrySliceMUS.Marshal(s.TrieEntries, bs[n:])
	n += historyEntrySliceMUS.Marshal(s.History, bs[n:])
	n += popularityMUS.Marshal(s.Popularity, bs[n:])
	n += varint.Uint64.Marshal(s.TotalSearches, bs[n:])
	n += varint.Int64.Marshal(int64(s.TotalLatency), bs[n:])
	n += TimeMUS.Marshal(s.CreatedAt, bs[n:])
	return n
}

func (snapshotSer) Unmarshal(bs []byte) (s Snapshot, n int, err error) {
	var m int
	if s.Documents, n, err = documentSliceMUS.Unmarshal(bs); err != nil {
		return
	}
	if s.TrieEntries, m, err = trieEntrySliceMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.History, m, err = historyEntrySliceMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.Popularity, m, err = popularityMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.TotalSearches, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	var latency int64
	if latency, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	s.TotalLatency = time.Duration(latency)
	n += m
	if s.CreatedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	return s, n + m, nil
}

func (snapshotSer) Size(s Snapshot) (size int) {
	size = documentSliceMUS.Size(s.Documents)
	size += trieEntrySliceMUS.Size(s.TrieEntries)
	size += historyEntrySliceMUS.Size(s.History)
	size += popularityMUS.Size(s.Popularity)
	size += varint.Uint64.Size(s.TotalSearches)
	size += varint.Int64.Size(int64(s.TotalLatency))
	size += TimeMUS.Size(s.CreatedAt)
	return size
}

func (s snapshotSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// MarshalSnapshot serializes a Snapshot to bytes.
func MarshalSnapshot(snap *Snapshot) []byte {
	buf := make([]byte, SnapshotMUS.Size(*snap))
	SnapshotMUS.Marshal(*snap, buf)
	return buf
}

// UnmarshalSnapshot deserializes a Snapshot from bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	snap, _, err := SnapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &snap, nil
}
