package sync

// Probe answers the single question "can we reach the remote store right
// now". The answer is never cached; every call is a fresh round trip.
type Probe struct {
	remote Remote
}

// NewProbe wires a Probe.
func NewProbe(r Remote) *Probe {
	return &Probe{remote: r}
}

// IsOnline performs the cheapest authenticated round trip and reports
// reachability. Any error at all means offline; IsOnline never fails.
func (p *Probe) IsOnline() bool {
	return p.remote.Ping() == nil
}
