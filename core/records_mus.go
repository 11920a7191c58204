package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted types. Field order is the wire order;
// append new fields at the end only.
var (
	IDMUS       = idMUS{}
	RecordMUS   = recordMUS{}
	ManifestMUS = manifestMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type recordMUS struct{}

func (s recordMUS) Marshal(v Record, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Position, bs)
	n += ord.String.Marshal(v.Direction, bs[n:])
	n += varint.Int.Marshal(v.Year, bs[n:])
	n += ord.String.Marshal(v.Date, bs[n:])
	n += ord.String.Marshal(v.Weekday, bs[n:])
	n += ord.String.Marshal(v.Country, bs[n:])
	n += ord.String.Marshal(v.Commodity, bs[n:])
	n += ord.String.Marshal(v.TransportMode, bs[n:])
	n += ord.String.Marshal(v.Measure, bs[n:])
	n += varint.Int64.Marshal(v.Value, bs[n:])
	return n + varint.Int64.Marshal(v.Cumulative, bs[n:])
}

func (s recordMUS) Unmarshal(bs []byte) (v Record, n int, err error) {
	var n1 int
	v.Position, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Direction, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Year, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for _, field := range []*string{&v.Date, &v.Weekday, &v.Country, &v.Commodity, &v.TransportMode, &v.Measure} {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Value, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Cumulative, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	return
}

func (s recordMUS) Size(v Record) (size int) {
	size = varint.Int.Size(v.Position)
	size += ord.String.Size(v.Direction)
	size += varint.Int.Size(v.Year)
	size += ord.String.Size(v.Date)
	size += ord.String.Size(v.Weekday)
	size += ord.String.Size(v.Country)
	size += ord.String.Size(v.Commodity)
	size += ord.String.Size(v.TransportMode)
	size += ord.String.Size(v.Measure)
	size += varint.Int64.Size(v.Value)
	return size + varint.Int64.Size(v.Cumulative)
}

func (s recordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for range 6 {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for range 2 {
		n1, err = varint.Int64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type manifestMUS struct{}

// LoadedAt is stored as Unix microseconds, UTC.
func (s manifestMUS) Marshal(v Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	n += IDMUS.Marshal(v.Fingerprint, bs[n:])
	n += varint.Int.Marshal(v.Records, bs[n:])
	return n + varint.Int64.Marshal(v.LoadedAt.UnixMicro(), bs[n:])
}

func (s manifestMUS) Unmarshal(bs []byte) (v Manifest, n int, err error) {
	var n1 int
	v.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Records, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LoadedAt = time.UnixMicro(micros).UTC()
	return
}

func (s manifestMUS) Size(v Manifest) (size int) {
	size = ord.String.Size(v.Source)
	size += IDMUS.Size(v.Fingerprint)
	size += varint.Int.Size(v.Records)
	return size + varint.Int64.Size(v.LoadedAt.UnixMicro())
}

func (s manifestMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
