package index

import (
	"math"
	"strconv"
)

// AttributeType identifies the variant of an AttributeValue on disk.
type AttributeType uint8

const (
	// AttributeAbsent marks a row that carries no value for an attribute.
	AttributeAbsent AttributeType = iota
	AttributeString
	AttributeUint64
	AttributeInt64
	AttributeFloat64
	AttributeBool
)

func (t AttributeType) String() string {
	switch t {
	case AttributeAbsent:
		return "absent"
	case AttributeString:
		return "string"
	case AttributeUint64:
		return "uint64"
	case AttributeInt64:
		return "int64"
	case AttributeFloat64:
		return "float64"
	case AttributeBool:
		return "bool"
	default:
		return "attribute(" + strconv.Itoa(int(t)) + ")"
	}
}

// AttributeValue is a value stored alongside a vector.
//
// The set of implementations is closed: StringValue, Uint64Value, Int64Value,
// Float64Value and BoolValue. Callers switch on the concrete type.
type AttributeValue interface {
	// Type returns the on-disk variant.
	Type() AttributeType
	// String renders the value for logs and error messages.
	String() string

	attributeValue()
}

// StringValue is a text attribute.
type StringValue string

// Uint64Value is an unsigned integer attribute.
type Uint64Value uint64

// Int64Value is a signed integer attribute.
type Int64Value int64

// Float64Value is a floating point attribute.
type Float64Value float64

// BoolValue is a boolean attribute.
type BoolValue bool

func (StringValue) Type() AttributeType  { return AttributeString }
func (Uint64Value) Type() AttributeType  { return AttributeUint64 }
func (Int64Value) Type() AttributeType   { return AttributeInt64 }
func (Float64Value) Type() AttributeType { return AttributeFloat64 }
func (BoolValue) Type() AttributeType    { return AttributeBool }

func (v StringValue) String() string  { return string(v) }
func (v Uint64Value) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Int64Value) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float64Value) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v BoolValue) String() string    { return strconv.FormatBool(bool(v)) }

func (StringValue) attributeValue()  {}
func (Uint64Value) attributeValue()  {}
func (Int64Value) attributeValue()   {}
func (Float64Value) attributeValue() {}
func (BoolValue) attributeValue()    {}

// writeAttribute appends a tagged cell. A nil value is written as absent.
func writeAttribute(p *payloadBuffer, v AttributeValue) {
	if v == nil {
		p.writeUint8(uint8(AttributeAbsent))
		return
	}
	p.writeUint8(uint8(v.Type()))
	switch v := v.(type) {
	case StringValue:
		p.writeText(string(v))
	case Uint64Value:
		p.writeUint64(uint64(v))
	case Int64Value:
		p.writeUint64(uint64(v))
	case Float64Value:
		p.writeUint64(math.Float64bits(float64(v)))
	case BoolValue:
		if v {
			p.writeUint8(1)
		} else {
			p.writeUint8(0)
		}
	}
}

// readAttribute decodes a tagged cell. Absent cells decode to nil.
func readAttribute(p *payloadBuffer) (AttributeValue, error) {
	tag := AttributeType(p.readUint8())
	if p.err != nil {
		return nil, p.err
	}
	var v AttributeValue
	switch tag {
	case AttributeAbsent:
		return nil, nil
	case AttributeString:
		v = StringValue(p.readText())
	case AttributeUint64:
		v = Uint64Value(p.readUint64())
	case AttributeInt64:
		v = Int64Value(int64(p.readUint64()))
	case AttributeFloat64:
		v = Float64Value(math.Float64frombits(p.readUint64()))
	case AttributeBool:
		switch p.readUint8() {
		case 0:
			v = BoolValue(false)
		case 1:
			v = BoolValue(true)
		default:
			return nil, corruptf("invalid bool cell")
		}
	default:
		return nil, corruptf("unknown attribute tag %d", tag)
	}
	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}
