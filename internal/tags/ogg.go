package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// oggFile edits the Vorbis comments of Ogg Opus and Ogg Vorbis streams
// through TagLib's flat property map.
type oggFile struct {
	codec fieldCodec
}

func openOgg(path string) (*oggFile, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Reason: "invalid Ogg stream", Err: err}
	}
	return &oggFile{
		codec: fieldCodec{path: path, store: propertyMapOf(raw), table: vorbisKeys},
	}, nil
}

func (f *oggFile) fields() *fieldCodec { return &f.codec }

func (f *oggFile) close() error { return nil }

// save writes the whole map; Clear removes keys that were deleted.
func (f *oggFile) save() error {
	props := f.codec.store.(*propertyMap)
	if err := taglib.WriteTags(f.codec.path, props.asMap(), taglib.Clear); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}
