package tool

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

func TestSignMessage(t *testing.T) {
	privateKeyHex := "8170940a65bda743704be89096ce6d292f052dbb897f4b7aa5d92aa1d0e64531"
	message := "{\"sendToAll\":true,\"title\":\"Weekend Special\"}"
	sig, err := SignMessage(message, privateKeyHex)
	if err != nil {
		t.Errorf("SignMessage() failed, err: %v", err)
		return
	}
	t.Logf("SignMessage() sig: %v", sig)
}

func TestVerifySign(t *testing.T) {
	privateKeyHex := "8170940a65bda743704be89096ce6d292f052dbb897f4b7aa5d92aa1d0e64531"
	message := "{\"sendToAll\":true,\"title\":\"Weekend Special\"}"

	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	privateKey, _ := btcec.PrivKeyFromBytes(privateKeyBytes)
	publicKey := hex.EncodeToString(privateKey.PubKey().SerializeCompressed())
	fmt.Println("publicKey: ", publicKey)

	messageSign, err := SignMessage(message, privateKeyHex)
	if err != nil {
		t.Fatalf("SignMessage() failed, err: %v", err)
	}

	verified, err := VerifySign(message, messageSign, publicKey)
	if err != nil {
		t.Errorf("VerifySign() failed, err: %v", err)
		return
	}
	if !verified {
		t.Errorf("VerifySign() verified: %v", verified)
	}
}
