package generic

// Void is the zero-size value type used for set membership.
type Void = struct{}

func NewVoid() Void {
	return Void{}
}
