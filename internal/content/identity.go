package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const localPrefix = "tmp-"

// ID identifies a course, module, lesson, section or blog post.
//
// An ID is either provisional (generated client-side before the first save),
// persisted (assigned by the server), or unassigned (the zero value). Only
// persisted identifiers are ever written to the wire; the server assigns one
// to every entity that arrives without it.
type ID struct {
	value string
	local bool
}

func NewLocalID() ID {
	return ID{value: localPrefix + uuid.NewString(), local: true}
}

func PersistedID(value string) ID {
	value = strings.TrimSpace(value)
	if value == "" {
		return ID{}
	}
	return ID{value: value}
}

// wireID reads an identifier received from outside. Values carrying the
// provisional prefix were never assigned by the server and decode as unassigned.
func wireID(value string) ID {
	if strings.HasPrefix(strings.TrimSpace(value), localPrefix) {
		return ID{}
	}
	return PersistedID(value)
}

func (id ID) IsZero() bool      { return id.value == "" }
func (id ID) IsLocal() bool     { return id.local }
func (id ID) IsPersisted() bool { return id.value != "" && !id.local }
func (id ID) String() string    { return id.value }

func (id ID) MarshalJSON() ([]byte, error) {
	if !id.IsPersisted() {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = wireID(s)
	return nil
}

func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !id.IsPersisted() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(id.value)
}

func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*id = ID{}
	case bsontype.String:
		*id = wireID(raw.StringValue())
	case bsontype.ObjectID:
		*id = PersistedID(raw.ObjectID().Hex())
	default:
		return fmt.Errorf("id: unsupported bson type %s", t)
	}
	return nil
}
