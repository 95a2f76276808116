package component

// Requirement is a typed reference to an upstream node's output, optionally
// narrowed by a Subscription. The catalog materializes the artifact from the
// upstream node's memoized output immediately before the owning node's
// producer runs, so a requirement never holds a reference to an unbuilt
// value.
type Requirement struct {
	artifact     Artifact
	subscription Subscription
}

// NewRequirement builds a requirement from an upstream artifact and a
// subscription.
func NewRequirement(artifact Artifact, subscription Subscription) Requirement {
	return Requirement{artifact: artifact, subscription: subscription}
}

// Artifact returns the full upstream artifact, before narrowing.
func (r Requirement) Artifact() Artifact { return r.artifact }

// Subscription returns the selector list attached to this requirement.
func (r Requirement) Subscription() Subscription { return r.subscription }

// Resolved applies the subscription to the upstream artifact and returns
// the narrowed view. With an empty subscription the artifact is returned
// unchanged.
func (r Requirement) Resolved() (Artifact, error) {
	return Resolve(r.artifact, r.subscription)
}
