package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/uhyunpark/zklink-signer/params"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

func main() {
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		fail("config", err)
	}

	// Step 1: Generate or load key
	var l1 *crypto.EthSigner
	generated := cfg.Signer.PrivateKey == ""
	if generated {
		fmt.Println("Generating new keypair...")
		l1, err = crypto.GenerateKey()
	} else {
		l1, err = crypto.FromPrivateKeyHex(cfg.Signer.PrivateKey)
	}
	if err != nil {
		fail("key", err)
	}
	if generated {
		fmt.Printf("Private Key:  %s (KEEP SECRET! set ZKLINK_PRIVATE_KEY to reuse)\n", l1.PrivateKeyHex())
	}
	domain := crypto.ZkLinkDomain(cfg.Layer1.ChainID, cfg.Layer1.MainContract)
	s, err := signer.New(signer.Config{L1: l1, Domain: domain})
	if err != nil {
		fail("signer", err)
	}
	fmt.Printf("Address:      %s\n", s.Address().Hex())
	fmt.Printf("Public Key:   0x%s\n", l1.PublicKeyHex())
	fmt.Printf("PubKeyHash:   %s\n\n", s.PubKeyHash())

	// Step 2: Build a fast withdrawal
	amount, err := types.ParseBigUint("99995900000000000000")
	if err != nil {
		fail("amount", err)
	}
	w, err := tx.NewWithdraw(tx.WithdrawBuilder{
		AccountID:        8300,
		SubAccountID:     4,
		ToChainID:        5,
		ToAddress:        types.AddressFromEth(s.Address()),
		L2SourceToken:    17,
		L1TargetToken:    17,
		Amount:           amount,
		Fee:              types.MustParseBigUint("4100000000000000"),
		Nonce:            1,
		FastWithdraw:     true,
		WithdrawFeeRatio: 50,
		Timestamp:        types.TimeStamp(time.Now().Unix()),
	})
	if err != nil {
		fail("build withdraw", err)
	}
	fmt.Println("Wallet message:")
	fmt.Println(w.EthSignMessage("USDC"))
	fmt.Println()
	fmt.Printf("Canonical bytes: 0x%x\n\n", w.Bytes())

	// Step 3: Sign
	bundle, err := s.SignWithdraw(w, "USDC")
	if err != nil {
		fail("sign", err)
	}
	out, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		fail("encode", err)
	}
	fmt.Println("Signed bundle (JSON):")
	fmt.Println(string(out))
	fmt.Println()

	// Step 4: Verify
	if err := signer.NewVerifier(domain).VerifyBundle(bundle, s.Address(), "USDC"); err != nil {
		fail("verify", err)
	}
	hash, _ := bundle.Hash()
	fmt.Println("Bundle verified")
	fmt.Printf("  Tx hash: %s\n", hash)
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "Error (%s): %v\n", step, err)
	os.Exit(1)
}
