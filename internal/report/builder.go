package report

import "time"

// Builder accumulates named sections and produces a Document exactly once.
type Builder struct {
	fields []Field
	index  map[string]int
	done   bool
}

// NewBuilder starts a document whose first field is the timestamp.
func NewBuilder(ts time.Time) *Builder {
	b := &Builder{index: make(map[string]int)}
	b.Set(KeyTimestamp, FormatTimestamp(ts))
	return b
}

// NewObject starts an untimestamped document, for nested sections.
func NewObject() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Set adds a section. Setting an existing key replaces its value in place.
// It panics with ErrFinalized once the builder has been finalized.
func (b *Builder) Set(key string, value any) *Builder {
	if b.done {
		panic(ErrFinalized)
	}
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = value
		return b
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Value: value})
	return b
}

// Finalize returns the built document. The builder cannot be used afterwards.
func (b *Builder) Finalize() Document {
	if b.done {
		panic(ErrFinalized)
	}
	b.done = true
	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)
	return Document{fields: fields}
}
