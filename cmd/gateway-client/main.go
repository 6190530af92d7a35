package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/api/ccipreadhandler"
	"github.com/ruteri/ccip-read-gateway/signer"
	"github.com/urfave/cli/v2"
)

var nameFlag = &cli.StringFlag{
	Name:     "name",
	Required: true,
	Usage:    "ENS name to resolve, e.g. foo.eth",
}

var recordFlag = &cli.StringFlag{
	Name:  "record",
	Value: "addr",
	Usage: "record to resolve: addr, addr:<coinType>, text:<key> or contenthash",
}

var resolveFlags = []cli.Flag{
	nameFlag,
	recordFlag,
	&cli.StringFlag{
		Name:    "gateway",
		Value:   "http://127.0.0.1:8080/resolve/{sender}/{data}.json",
		EnvVars: []string{"GATEWAY_URL"},
		Usage:   "gateway URL template; without {data} the request is POSTed",
	},
	&cli.StringFlag{
		Name:     "sender",
		Required: true,
		Usage:    "address of the verifying resolver contract on the origin chain",
	},
	&cli.StringFlag{
		Name:     "signer",
		Required: true,
		Usage:    "address the gateway responses must be signed by",
	},
	&cli.DurationFlag{
		Name:  "timeout",
		Value: 30 * time.Second,
		Usage: "request timeout",
	},
}

func main() {
	app := &cli.App{
		Name:  "gateway-client",
		Usage: "Query a CCIP-Read gateway and verify its signed responses",
		Commands: []*cli.Command{
			{
				Name:   "resolve",
				Usage:  "resolve a record through the gateway and verify the response",
				Flags:  resolveFlags,
				Action: resolveAction,
			},
			{
				Name:  "encode",
				Usage: "print the resolve(bytes,bytes) calldata for a record",
				Flags: []cli.Flag{nameFlag, recordFlag},
				Action: func(cCtx *cli.Context) error {
					lookup, err := NewLookup(cCtx.String(nameFlag.Name), cCtx.String(recordFlag.Name))
					if err != nil {
						return err
					}
					fmt.Println(hexutil.Encode(lookup.Calldata))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveAction(cCtx *cli.Context) error {
	sender, err := parseAddress("sender", cCtx.String("sender"))
	if err != nil {
		return err
	}
	expectedSigner, err := parseAddress("signer", cCtx.String("signer"))
	if err != nil {
		return err
	}

	lookup, err := NewLookup(cCtx.String(nameFlag.Name), cCtx.String(recordFlag.Name))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cCtx.Context, cCtx.Duration("timeout"))
	defer cancel()

	encoded, err := ccipreadhandler.Resolve(ctx, cCtx.String("gateway"), sender, lookup.Calldata)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}

	result, err := signer.Verify(encoded, sender, lookup.Calldata, expectedSigner, time.Now())
	if err != nil {
		return fmt.Errorf("response verification failed: %w", err)
	}

	_, expires, _, err := signer.DecodeResponse(encoded)
	if err != nil {
		return err
	}

	formatted, err := lookup.FormatResult(result)
	if err != nil {
		return fmt.Errorf("could not decode %s result: %w", lookup.Record, err)
	}

	fmt.Printf("%s %s = %s\n", lookup.Name, lookup.Record, formatted)
	fmt.Printf("signed by %s, valid until %s\n", expectedSigner.Hex(), time.Unix(int64(expires), 0).UTC().Format(time.RFC3339))
	return nil
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, value)
	}
	return common.HexToAddress(value), nil
}
