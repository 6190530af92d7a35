package dnsname

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// MaxLabelLength is the largest label a single length byte can describe.
const MaxLabelLength = 255

// Decode reconstructs the dot-joined name from its DNS wire encoding.
// Empty input decodes to the empty string. Bytes after the terminating zero-length label are ignored.
func Decode(encoded []byte) (string, error) {
	if len(encoded) == 0 {
		return "", nil
	}

	var labels []string
	offset := 0
	for {
		if offset >= len(encoded) {
			return "", fmt.Errorf("%w: name is not terminated by a zero-length label", interfaces.ErrMalformedEncoding)
		}

		length := int(encoded[offset])
		if length == 0 {
			break
		}

		end := offset + 1 + length
		if end > len(encoded) {
			return "", fmt.Errorf("%w: label at offset %d declares %d bytes but only %d remain",
				interfaces.ErrMalformedEncoding, offset, length, len(encoded)-offset-1)
		}

		labels = append(labels, string(encoded[offset+1:end]))
		offset = end
	}

	return strings.Join(labels, "."), nil
}

// Encode produces the DNS wire encoding of name.
// The empty name and the root "." encode to a single zero byte.
func Encode(name string) ([]byte, error) {
	trimmed := strings.TrimSuffix(name, ".")
	if strings.HasPrefix(trimmed, ".") || strings.Contains(trimmed, "..") {
		return nil, fmt.Errorf("%w: empty label in %q", interfaces.ErrMalformedEncoding, name)
	}

	labels := dns.SplitDomainName(name)

	encoded := make([]byte, 0, len(name)+2)
	for _, label := range labels {
		if len(label) == 0 {
			return nil, fmt.Errorf("%w: empty label in %q", interfaces.ErrMalformedEncoding, name)
		}
		if len(label) > MaxLabelLength {
			return nil, fmt.Errorf("%w: label of %d bytes exceeds %d", interfaces.ErrMalformedEncoding, len(label), MaxLabelLength)
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}

	return append(encoded, 0), nil
}
