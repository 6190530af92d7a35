package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// jsonSuffix is appended to {data} by the ENS offchain-resolver URL template.
const jsonSuffix = ".json"

// ParseRequest validates the sender and data route parameters.
// The sender must be a 20-byte hex address and data hex-encoded calldata,
// with or without a 0x prefix and an optional .json suffix.
func ParseRequest(sender, data string) (*interfaces.CCIPReadRequest, error) {
	if !common.IsHexAddress(sender) {
		return nil, &interfaces.ValidationError{
			Field:  "sender",
			Value:  sender,
			Reason: "must be a 20-byte hex address",
		}
	}

	raw := strings.TrimSuffix(data, jsonSuffix)
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw
	}

	calldata, err := hexutil.Decode(raw)
	if err != nil {
		return nil, &interfaces.ValidationError{
			Field:  "data",
			Value:  data,
			Reason: "must be hex-encoded calldata: " + err.Error(),
		}
	}
	if len(calldata) == 0 {
		return nil, &interfaces.ValidationError{
			Field:  "data",
			Value:  data,
			Reason: "must not be empty",
		}
	}

	return &interfaces.CCIPReadRequest{
		Sender: common.HexToAddress(sender),
		Data:   calldata,
	}, nil
}
