package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestABI_Methods(t *testing.T) {
	for _, name := range []string{
		"getAllBusinessIds",
		"getBusinessData",
		"getEncryptedValue",
		"isAvailable",
		"createBusinessData",
		"verifyDecryption",
	} {
		_, ok := parsedABI.Methods[name]
		assert.True(t, ok, "missing method %s", name)
	}
}

func TestABI_PackCreate(t *testing.T) {
	data, err := parsedABI.Pack("createBusinessData",
		"event-1700000000000",
		"Park Meetup",
		common.BytesToHash([]byte{0x01}),
		[]byte{0x02},
		big.NewInt(100),
		big.NewInt(0),
		"Game Event",
	)
	require.NoError(t, err)
	assert.Equal(t, parsedABI.Methods["createBusinessData"].ID, data[:4])
}

func TestRecordFromOutputs(t *testing.T) {
	outputs := parsedABI.Methods["getBusinessData"].Outputs
	creator := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	data, err := outputs.Pack(
		"Park Meetup",
		big.NewInt(100),
		big.NewInt(0),
		"Game Event",
		creator,
		big.NewInt(1700000000),
		true,
		uint32(12345),
	)
	require.NoError(t, err)

	values, err := outputs.Unpack(data)
	require.NoError(t, err)

	record, err := recordFromOutputs(values)
	require.NoError(t, err)
	assert.Equal(t, "Park Meetup", record.Name)
	assert.Equal(t, int64(100), record.PublicRadius)
	assert.Equal(t, "Game Event", record.Description)
	assert.Equal(t, creator.Hex(), record.Creator)
	assert.Equal(t, int64(1700000000), record.Timestamp)
	assert.True(t, record.Triggered)
	assert.Equal(t, int64(12345), record.RevealedValue)

	_, err = recordFromOutputs(values[:3])
	assert.Error(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts NewClientOptions
	}{
		{name: "missing rpc url", opts: NewClientOptions{ContractAddress: "0x00000000000000000000000000000000000f4e01"}},
		{name: "invalid contract address", opts: NewClientOptions{RPCURL: "http://localhost:8545", ContractAddress: "nope"}},
		{name: "invalid private key", opts: NewClientOptions{
			RPCURL:          "http://localhost:8545",
			ContractAddress: "0x00000000000000000000000000000000000f4e01",
			PrivateKey:      "0xzz",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestNewClient_SignerAddress(t *testing.T) {
	// Dialing an http endpoint does not connect until the first call.
	client, err := NewClient(context.Background(), NewClientOptions{
		RPCURL:          "http://127.0.0.1:8545",
		ContractAddress: "0x00000000000000000000000000000000000f4e01",
		PrivateKey:      "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291",
		ChainID:         1337,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, common.IsHexAddress(client.SignerAddress()))
	address, err := client.Address(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000f4e01").Hex(), address)
}

func TestClient_CreateEventRejectsNegativeValues(t *testing.T) {
	client := &Client{}
	tests := []struct {
		name   string
		radius int64
		extra  int64
	}{
		{name: "radius", radius: -5},
		{name: "extra", radius: 100, extra: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateEvent(context.Background(), chain.CreateEventParams{
				ID:           "event-1",
				Ciphertext:   make([]byte, common.HashLength),
				PublicRadius: tt.radius,
				PublicExtra:  tt.extra,
			})
			assert.ErrorContains(t, err, "must not be negative")
		})
	}
}
