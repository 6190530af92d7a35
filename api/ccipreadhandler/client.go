package ccipreadhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/api"
)

// GatewayError is returned by Resolve when the gateway answers with a non-200 status.
type GatewayError struct {
	StatusCode int
	Response   api.ErrorResponse
}

func (e *GatewayError) Error() string {
	if e.Response.Error != nil && e.Response.Error.Code != "" {
		return fmt.Sprintf("gateway returned %d (%s): %s", e.StatusCode, e.Response.Error.Code, e.Response.Message)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Response.Message)
}

// Resolve performs a CCIP-Read lookup against a gateway and returns the
// undecoded response bytes.
//
// urlTemplate follows EIP-3668: {sender} and {data} are substituted with the
// lowercase hex sender and calldata. If the template contains {data} the
// request is a GET, otherwise the calldata is POSTed as an api.ResolveRequest.
//
// The response is not verified. Callers should check it with signer.Verify
// against the signer they trust.
func Resolve(ctx context.Context, urlTemplate string, sender common.Address, data []byte) ([]byte, error) {
	senderHex := strings.ToLower(sender.Hex())
	dataHex := hexutil.Encode(data)

	url := strings.ReplaceAll(urlTemplate, "{sender}", senderHex)

	var req *http.Request
	var err error
	if strings.Contains(url, "{data}") {
		url = strings.ReplaceAll(url, "{data}", dataHex)
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		body, marshalErr := json.Marshal(&api.ResolveRequest{Sender: senderHex, Data: dataHex})
		if marshalErr != nil {
			return nil, fmt.Errorf("could not encode request: %w", marshalErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not query gateway: %w", err)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		gatewayErr := &GatewayError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, &gatewayErr.Response); err != nil {
			gatewayErr.Response.Message = strings.TrimSpace(string(respBody))
		}
		return nil, gatewayErr
	}

	var resolveResp api.ResolveResponse
	if err := json.Unmarshal(respBody, &resolveResp); err != nil {
		return nil, fmt.Errorf("could not parse gateway response: %w", err)
	}

	response, err := hexutil.Decode(resolveResp.Data)
	if err != nil {
		return nil, fmt.Errorf("could not decode gateway response data: %w", err)
	}
	return response, nil
}
