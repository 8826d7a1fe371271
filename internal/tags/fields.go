package tags

import (
	"slices"
	"strconv"
	"strings"

	"github.com/llehouerou/crate/internal/position"
)

// store is the native key/value surface of one container. Keys are compared
// case-insensitively by the implementations that need it.
type store interface {
	get(key string) []string
	// put replaces every value of key and reports whether anything changed.
	put(key, value string) bool
	// drop removes key and reports whether it was present.
	drop(key string) bool
	names() []string
}

// nativeField maps one semantic tag to native keys. The first key is written;
// the rest are aliases that are read as fallbacks and removed on write.
// Positions with totals set keep the total in a separate key (Vorbis style),
// otherwise the position is stored combined as "N/M".
type nativeField struct {
	keys   []string
	totals []string
}

type keyTable map[Tag]nativeField

// fieldCodec translates semantic tags to a store through a key table.
type fieldCodec struct {
	path  string
	store store
	table keyTable
	dirty bool
}

func (c *fieldCodec) field(t Tag) nativeField {
	return c.table[t]
}

// single returns the one value of the first present key of f.
func (c *fieldCodec) single(t Tag, keys []string) (key, value string, ok bool, err error) {
	for _, k := range keys {
		values := c.store.get(k)
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 {
			return k, "", false, &MultipleValuesError{Path: c.path, Tag: t, Key: k, Values: values}
		}
		return k, values[0], true, nil
	}
	return "", "", false, nil
}

func (c *fieldCodec) text(t Tag) (string, bool, error) {
	_, v, ok, err := c.single(t, c.field(t).keys)
	if err != nil || !ok {
		return "", false, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (c *fieldCodec) setText(t Tag, value string) {
	f := c.field(t)
	c.mark(c.store.put(f.keys[0], value))
	for _, alias := range f.keys[1:] {
		c.mark(c.store.drop(alias))
	}
}

func (c *fieldCodec) position(t Tag) (position.Position, bool, error) {
	f := c.field(t)
	_, raw, ok, err := c.single(t, f.keys)
	if err != nil || !ok {
		return position.Position{}, false, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return position.Position{}, false, nil
	}
	p, err := position.Parse(raw)
	if err != nil {
		return position.Position{}, false, &CorruptTagError{Path: c.path, Tag: t, Value: raw, Err: err}
	}
	if len(f.totals) == 0 {
		return p, true, nil
	}

	total, hasTotal, err := c.separateTotal(t, f.totals)
	if err != nil {
		return position.Position{}, false, err
	}
	if !hasTotal {
		return p, true, nil
	}
	if embedded, ok := p.Total(); ok && embedded != total {
		return position.Position{}, false, &CorruptTagError{
			Path:  c.path,
			Tag:   t,
			Value: raw + " (total " + strconv.Itoa(total) + ")",
		}
	}
	return position.WithTotal(p.Index, total), true, nil
}

// separateTotal reads the total keys of a Vorbis-style position. Every
// present key must agree.
func (c *fieldCodec) separateTotal(t Tag, keys []string) (int, bool, error) {
	total, found := 0, false
	for _, k := range keys {
		values := c.store.get(k)
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 {
			return 0, false, &MultipleValuesError{Path: c.path, Tag: t, Key: k, Values: values}
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		n, err := position.Parse(raw)
		if _, hasTotal := n.Total(); err != nil || hasTotal {
			return 0, false, &CorruptTagError{Path: c.path, Tag: t, Value: raw, Err: err}
		}
		if found && n.Index != total {
			return 0, false, &CorruptTagError{
				Path:  c.path,
				Tag:   t,
				Value: strconv.Itoa(total) + " != " + raw,
			}
		}
		total, found = n.Index, true
	}
	return total, found, nil
}

func (c *fieldCodec) setPosition(t Tag, p position.Position) {
	f := c.field(t)
	for _, alias := range f.keys[1:] {
		c.mark(c.store.drop(alias))
	}
	if len(f.totals) == 0 {
		c.mark(c.store.put(f.keys[0], p.String()))
		return
	}

	c.mark(c.store.put(f.keys[0], strconv.Itoa(p.Index)))
	total, hasTotal := p.Total()
	if hasTotal {
		c.mark(c.store.put(f.totals[0], strconv.Itoa(total)))
	} else {
		c.mark(c.store.drop(f.totals[0]))
	}
	for _, alias := range f.totals[1:] {
		c.mark(c.store.drop(alias))
	}
}

func (c *fieldCodec) remove(t Tag) {
	f := c.field(t)
	for _, k := range f.keys {
		c.mark(c.store.drop(k))
	}
	for _, k := range f.totals {
		c.mark(c.store.drop(k))
	}
}

func (c *fieldCodec) rawKeys() []string {
	keys := c.store.names()
	slices.Sort(keys)
	return slices.Compact(keys)
}

func (c *fieldCodec) mark(changed bool) {
	if changed {
		c.dirty = true
	}
}

// propertyMap is an ordered multi-valued map with upper-cased keys. It backs
// Vorbis comments and TagLib property maps.
type propertyMap struct {
	keys   []string
	values map[string][]string
}

func newPropertyMap() *propertyMap {
	return &propertyMap{values: make(map[string][]string)}
}

// propertyMapOf copies a TagLib property map, sorting keys for stable output.
func propertyMapOf(m map[string][]string) *propertyMap {
	p := newPropertyMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range m[k] {
			p.add(k, v)
		}
	}
	return p
}

func (p *propertyMap) add(key, value string) {
	key = strings.ToUpper(key)
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = append(p.values[key], value)
}

func (p *propertyMap) get(key string) []string {
	return p.values[strings.ToUpper(key)]
}

func (p *propertyMap) put(key, value string) bool {
	key = strings.ToUpper(key)
	if current, ok := p.values[key]; ok && len(current) == 1 && current[0] == value {
		return false
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = []string{value}
	return true
}

func (p *propertyMap) drop(key string) bool {
	key = strings.ToUpper(key)
	if _, ok := p.values[key]; !ok {
		return false
	}
	delete(p.values, key)
	p.keys = slices.DeleteFunc(p.keys, func(k string) bool { return k == key })
	return true
}

func (p *propertyMap) names() []string {
	return slices.Clone(p.keys)
}

// entries returns KEY=value pairs in insertion order.
func (p *propertyMap) entries() []string {
	var out []string
	for _, k := range p.keys {
		for _, v := range p.values[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

// asMap returns a copy suitable for taglib.WriteTags.
func (p *propertyMap) asMap() map[string][]string {
	out := make(map[string][]string, len(p.keys))
	for _, k := range p.keys {
		out[k] = slices.Clone(p.values[k])
	}
	return out
}
