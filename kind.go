package bencode

import "github.com/rawbytedev/bencode/internal/common"

// Kind identifies one of the four value shapes.
type Kind uint8

const (
	Invalid Kind = iota
	ByteString
	Integer
	List
	Dictionary
)

// Structural tokens.
const (
	tokenInteger    byte = 'i'
	tokenList       byte = 'l'
	tokenDictionary byte = 'd'
	tokenEnd        byte = 'e'
	tokenSeparator  byte = ':'
)

func (k Kind) String() string {
	switch k {
	case ByteString:
		return "byte-string"
	case Integer:
		return "integer"
	case List:
		return "list"
	case Dictionary:
		return "dictionary"
	default:
		return "invalid"
	}
}

// kindTable is scanned in order by Classify.
var kindTable = [...]struct {
	kind  Kind
	match func(byte) bool
}{
	{ByteString, common.IsDigit},
	{Integer, func(b byte) bool { return b == tokenInteger }},
	{List, func(b byte) bool { return b == tokenList }},
	{Dictionary, func(b byte) bool { return b == tokenDictionary }},
}

// Classify maps a leading byte to the kind of value it begins, or Invalid.
func Classify(b byte) Kind {
	for _, entry := range kindTable {
		if entry.match(b) {
			return entry.kind
		}
	}
	return Invalid
}
