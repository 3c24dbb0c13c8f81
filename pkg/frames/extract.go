package frames

// Extract walks the caller chain from head outward and returns the stack in
// oldest-caller-first order. The walk stops at the end of the chain or
// strictly before base (pointer identity, exclusive). Frames whose code is in
// ignored are omitted from the result but do not stop the walk; their callers
// are still visited. The walk is iterative, so chains several hundred frames
// deep cost O(depth) with no recursion.
func Extract(head, base *Frame, ignored *CodeSet) []*Frame {
	if head == nil {
		return nil
	}

	var stack []*Frame
	for f := head; f != nil && f != base; f = f.Caller() {
		if ignored != nil && ignored.Contains(f.Code()) {
			continue
		}
		stack = append(stack, f)
	}

	// collected innermost-first; reverse into caller-to-callee order
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}
