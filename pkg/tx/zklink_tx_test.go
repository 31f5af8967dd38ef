package tx

import (
	"crypto/sha256"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZkLinkTxJSONRoundTrip(t *testing.T) {
	signer := testL2Signer(t, 3)

	transfer, err := NewTransfer(sampleTransferBuilder())
	require.NoError(t, err)
	b := sampleWithdrawBuilder()
	b.CallData = []byte{1, 2, 3}
	b.FastWithdraw = true
	b.WithdrawFeeRatio = 50
	withdraw, err := NewWithdraw(b)
	require.NoError(t, err)
	cpk, err := NewChangePubKey(sampleChangePubKeyBuilder())
	require.NoError(t, err)
	matching, err := NewOrderMatching(sampleMatchingBuilder(t))
	require.NoError(t, err)

	sig, err := signer.Sign(withdraw.Bytes())
	require.NoError(t, err)
	withdraw = withdraw.WithSignature(sig)

	envelopes := map[string]ZkLinkTx{
		"Transfer":      NewZkLinkTx(transfer),
		"Withdraw":      NewZkLinkTx(withdraw),
		"ChangePubKey":  NewZkLinkTx(cpk),
		"OrderMatching": matching.ToZkLinkTx(),
	}
	for name, env := range envelopes {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(env)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), `{"type":"`+name+`",`), string(data))

			var decoded ZkLinkTx
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.NoError(t, decoded.Validate())
			assert.Equal(t, env.TxType(), decoded.TxType())
			assert.Equal(t, env.Bytes(), decoded.Bytes())
			assert.Equal(t, env.AccountID(), decoded.AccountID())
			assert.Equal(t, env.Nonce(), decoded.Nonce())

			want, err := env.Hash()
			require.NoError(t, err)
			got, err := decoded.Hash()
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, [32]byte(sha256.Sum256(env.Bytes())), [32]byte(got))
		})
	}

	var decoded ZkLinkTx
	data, _ := json.Marshal(envelopes["Withdraw"])
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Signature().Verify(decoded.Bytes()))
}

func TestZkLinkTxRejects(t *testing.T) {
	order, err := NewOrder(sampleOrderBuilder(true))
	require.NoError(t, err)
	env := NewZkLinkTx(order)
	assert.True(t, env.IsZero())
	assert.Error(t, env.Validate())
	_, err = env.Hash()
	assert.Error(t, err)
	_, err = json.Marshal(env)
	assert.Error(t, err)

	var decoded ZkLinkTx
	err = json.Unmarshal([]byte(`{"type":"Deposit"}`), &decoded)
	assert.ErrorIs(t, err, ErrUnknownTxType)
}

func TestTxTypeString(t *testing.T) {
	assert.Equal(t, "Withdraw", TxTypeWithdraw.String())
	assert.Equal(t, "Order", TxTypeOrder.String())
	assert.Equal(t, "TxType(0x01)", TxType(1).String())
}
