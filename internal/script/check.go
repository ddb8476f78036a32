package script

// CheckSource parses src and discards the result, returning nil when src is
// valid (including the empty-script case). This is the concrete function
// internal/mapping.ScriptChecker wants: mapping.Validate never imports this
// package directly, so the facade supplies CheckSource as that seam.
func CheckSource(src string) error {
	_, err := New(src)
	if err != nil {
		return err
	}
	return nil
}
