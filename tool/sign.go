package tool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SignMessage 使用私钥对消息做 secp256k1 签名，返回 DER 十六进制串
func SignMessage(message string, privateKeyHex string) (string, error) {
	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid private key hex: %w", err)
	}

	privateKey, _ := btcec.PrivKeyFromBytes(privateKeyBytes)

	hash := sha256.Sum256([]byte(message))
	sig := ecdsa.Sign(privateKey, hash[:])

	return hex.EncodeToString(sig.Serialize()), nil
}

// VerifySign 校验消息签名，publicKey 为压缩公钥十六进制串
func VerifySign(message string, messageSign string, publicKey string) (bool, error) {
	sigBytes, err := hex.DecodeString(messageSign)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}

	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("parse signature failed: %w", err)
	}

	pubKeyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return false, fmt.Errorf("invalid public key hex: %w", err)
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, fmt.Errorf("parse public key failed: %w", err)
	}

	hash := sha256.Sum256([]byte(message))
	return sig.Verify(hash[:], pubKey), nil
}
