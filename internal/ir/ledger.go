package ir

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// TypeKey tags an Object with the ledger type it encodes.
const TypeKey = "@type"

// Type names reported by TypeOf.
const (
	TypeNull        = "Null"
	TypeString      = "String"
	TypeInt         = "Int"
	TypeBool        = "Bool"
	TypeArray       = "Array"
	TypeObject      = "Object"
	TypeAmount      = "Amount"
	TypeOpaqueBytes = "OpaqueBytes"
	TypeParty       = "Party"
)

// TypeOf returns the argument type name of v. Objects tagged with TypeKey
// report the tag; untagged objects report TypeObject.
func TypeOf(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return TypeNull
	case String:
		return TypeString
	case Int:
		return TypeInt
	case Bool:
		return TypeBool
	case Array:
		return TypeArray
	case Object:
		if tag, ok := val[TypeKey].(String); ok && tag != "" {
			return string(tag)
		}
		return TypeObject
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Amount encodes a quantity of a token (an ISO currency code for cash).
// Quantity is in whole token units.
func Amount(quantity int64, token string) Object {
	return Object{
		TypeKey:    String(TypeAmount),
		"quantity": Int(quantity),
		"token":    String(token),
	}
}

// AsAmount decodes an Amount object.
func AsAmount(v Value) (quantity int64, token string, err error) {
	obj, err := tagged(v, TypeAmount)
	if err != nil {
		return 0, "", err
	}
	q, ok := obj["quantity"].(Int)
	if !ok {
		return 0, "", fmt.Errorf("amount: quantity must be Int, got %s", TypeOf(obj["quantity"]))
	}
	t, ok := obj["token"].(String)
	if !ok || t == "" {
		return 0, "", fmt.Errorf("amount: token is required")
	}
	return int64(q), string(t), nil
}

// OpaqueBytes encodes an issuer reference as upper-case hex.
func OpaqueBytes(b []byte) Object {
	return Object{
		TypeKey: String(TypeOpaqueBytes),
		"bytes": String(strings.ToUpper(hex.EncodeToString(b))),
	}
}

// AsOpaqueBytes decodes an OpaqueBytes object.
func AsOpaqueBytes(v Value) ([]byte, error) {
	obj, err := tagged(v, TypeOpaqueBytes)
	if err != nil {
		return nil, err
	}
	s, ok := obj["bytes"].(String)
	if !ok {
		return nil, fmt.Errorf("opaque bytes: bytes must be String")
	}
	return hex.DecodeString(string(s))
}

// Party is a ledger identity: a well-known X.500 name and the key that owns
// it. It is the opaque handle returned by identity resolution.
type Party struct {
	Name      string `json:"name"`
	OwningKey string `json:"owningKey"`
}

// Value encodes the party as a flow argument.
func (p Party) Value() Object {
	return Object{
		TypeKey:     String(TypeParty),
		"name":      String(p.Name),
		"owningKey": String(p.OwningKey),
	}
}

// String returns the party's X.500 name.
func (p Party) String() string {
	return p.Name
}

// AsParty decodes a Party object.
func AsParty(v Value) (Party, error) {
	obj, err := tagged(v, TypeParty)
	if err != nil {
		return Party{}, err
	}
	name, _ := obj["name"].(String)
	key, _ := obj["owningKey"].(String)
	if name == "" {
		return Party{}, fmt.Errorf("party: name is required")
	}
	return Party{Name: string(name), OwningKey: string(key)}, nil
}

func tagged(v Value, want string) (Object, error) {
	if got := TypeOf(v); got != want {
		return nil, fmt.Errorf("expected %s, got %s", want, got)
	}
	return v.(Object), nil
}
