package domain

const (
	RequesterIdCtxKey = "dt-requesterId"
)

const (
	RequesterIdHeader = "dt-requester-id"
)
