package interfaces

type Replier interface {
	InternalError()
	Usage()
	// ReplyWithMessage sends MarkdownV2, callers escape user supplied text.
	ReplyWithMessage(msg string)
}
