package tasks

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a short user-facing message produced by an operation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

func success(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }

func failure(msg string) Notice { return Notice{Kind: NoticeError, Message: msg} }
