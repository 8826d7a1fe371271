package tags

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/position"
)

// adapter persists a fieldCodec for one container format.
type adapter interface {
	fields() *fieldCodec
	save() error
	close() error
}

// File is an open music file with buffered tag edits.
// Set and Delete calls are only written by Save.
type File struct {
	path    string
	format  Format
	adapter adapter
}

// Open sniffs the container of path and loads its tags.
func Open(path string) (*File, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	var a adapter
	switch format {
	case FormatFLAC:
		a, err = openFLAC(path)
	case FormatMP3:
		a, err = openMP3(path)
	case FormatM4A:
		a, err = openM4A(path)
	case FormatOgg:
		a, err = openOgg(path)
	default:
		return nil, &UnsupportedFormatError{Path: path, Reason: string(format)}
	}
	if err != nil {
		return nil, err
	}

	return &File{path: path, format: format, adapter: a}, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Format returns the sniffed container format.
func (f *File) Format() Format { return f.format }

// Dirty reports whether there are unsaved edits.
func (f *File) Dirty() bool { return f.adapter.fields().dirty }

func (f *File) checkKind(t Tag, want Kind) error {
	if t.Kind() != want {
		return fmt.Errorf("%s: %w", t, ErrWrongKind)
	}
	return nil
}

// LookupText returns a text tag, with ok=false when absent.
func (f *File) LookupText(t Tag) (string, bool, error) {
	if err := f.checkKind(t, KindText); err != nil {
		return "", false, err
	}
	return f.adapter.fields().text(t)
}

// Text returns a text tag or a MissingTagError.
func (f *File) Text(t Tag) (string, error) {
	v, ok, err := f.LookupText(t)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &MissingTagError{Path: f.path, Tag: t}
	}
	return v, nil
}

// LookupPosition returns a position tag, with ok=false when absent.
func (f *File) LookupPosition(t Tag) (position.Position, bool, error) {
	if err := f.checkKind(t, KindPosition); err != nil {
		return position.Position{}, false, err
	}
	return f.adapter.fields().position(t)
}

// Position returns a position tag or a MissingTagError.
func (f *File) Position(t Tag) (position.Position, error) {
	p, ok, err := f.LookupPosition(t)
	if err != nil {
		return position.Position{}, err
	}
	if !ok {
		return position.Position{}, &MissingTagError{Path: f.path, Tag: t}
	}
	return p, nil
}

// LookupID returns an identifier tag, with ok=false when absent. A value that
// is not a UUID is a CorruptTagError.
func (f *File) LookupID(t Tag) (uuid.UUID, bool, error) {
	if err := f.checkKind(t, KindID); err != nil {
		return uuid.Nil, false, err
	}
	raw, ok, err := f.adapter.fields().text(t)
	if err != nil || !ok {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, &CorruptTagError{Path: f.path, Tag: t, Value: raw, Err: err}
	}
	return id, true, nil
}

// ID returns an identifier tag or a MissingTagError.
func (f *File) ID(t Tag) (uuid.UUID, error) {
	id, ok, err := f.LookupID(t)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, &MissingTagError{Path: f.path, Tag: t}
	}
	return id, nil
}

// SetText sets a text tag. A blank value deletes the tag.
func (f *File) SetText(t Tag, value string) error {
	if err := f.checkKind(t, KindText); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		f.adapter.fields().remove(t)
		return nil
	}
	f.adapter.fields().setText(t, value)
	return nil
}

// SetPosition sets a disc or track position.
func (f *File) SetPosition(t Tag, p position.Position) error {
	if err := f.checkKind(t, KindPosition); err != nil {
		return err
	}
	f.adapter.fields().setPosition(t, p)
	return nil
}

// SetID sets an identifier tag.
func (f *File) SetID(t Tag, id uuid.UUID) error {
	if err := f.checkKind(t, KindID); err != nil {
		return err
	}
	f.adapter.fields().setText(t, id.String())
	return nil
}

// Delete removes every native key of a tag. Deleting an absent tag is a no-op.
func (f *File) Delete(t Tag) error {
	if _, ok := tagNames[t]; !ok {
		return fmt.Errorf("%s: %w", t, ErrWrongKind)
	}
	f.adapter.fields().remove(t)
	return nil
}

// RawTags returns the sorted native key names present in the file.
func (f *File) RawTags() []string {
	return f.adapter.fields().rawKeys()
}

// Save writes pending edits. It does nothing when no edit changed a value.
func (f *File) Save() error {
	c := f.adapter.fields()
	if !c.dirty {
		return nil
	}
	if err := f.adapter.save(); err != nil {
		return fmt.Errorf("save tags %s: %w", f.path, err)
	}
	c.dirty = false
	return nil
}

// Close releases the file. Unsaved edits are discarded.
func (f *File) Close() error {
	return f.adapter.close()
}
