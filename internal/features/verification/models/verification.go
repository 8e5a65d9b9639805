package models

import "fmt"

// SigningMessage is the exact text the wallet owner signs. It contains
// only the wallet address; session binding happens through token
// consumption, not through the message itself.
func SigningMessage(walletAddress string) string {
	return fmt.Sprintf("Please sign this message to verify your wallet address: %s", walletAddress)
}

// VerifyRequest is the body of POST /verify. All three fields are
// required.
type VerifyRequest struct {
	Token         string `json:"token"`
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
}

type VerifyResponse struct {
	Message string `json:"message" example:"Verification successful"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Missing data"`
}
