package port

// Notifier delivers a plain-text message to a recipient. Delivery is
// best effort: implementations log transport failures and return them
// only so callers can count degraded deliveries. A Notifier error must
// never abort or roll back the workflow transition that triggered it.
type Notifier interface {
	// Send delivers one message to the given email address.
	Send(recipient, subject, body string) error

	// SendToDirection delivers one message to the configured Direction
	// oversight address.
	SendToDirection(subject, body string) error
}

// Delivery summarizes a notification dispatch after a transition.
// Attempted counts every send issued; Failed counts the ones the
// transport rejected. The transition itself has already committed.
type Delivery struct {
	Attempted int
	Failed    int
}

// Add folds another dispatch outcome into d.
func (d *Delivery) Add(err error) {
	d.Attempted++
	if err != nil {
		d.Failed++
	}
}

// Merge folds another delivery summary into d.
func (d *Delivery) Merge(other Delivery) {
	d.Attempted += other.Attempted
	d.Failed += other.Failed
}

// Degraded reports whether at least one send failed.
func (d Delivery) Degraded() bool {
	return d.Failed > 0
}
