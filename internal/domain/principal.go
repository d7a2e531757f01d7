package domain

// Principal is a registered identity capable of holding a public key and
// being referenced as creator, signer or viewer.
type Principal struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	PublicKey string `json:"publicKey"`
}
