package source

// Acker is implemented by sources which require explicit confirmation of
// consumed messages.
type Acker interface {
	Ack(id string) error
}
