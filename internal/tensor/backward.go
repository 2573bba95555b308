package tensor

import "fmt"

// Backward computes gradients of t with respect to every leaf tensor that
// requires grad and accumulates them into the leaves' gradient slots.
//
// t must hold exactly one element; its seed gradient is one. Gradients
// accumulate across calls until cleared with ZeroGrad.
//
// Algorithm:
//  1. Order the graph reachable from t so every tensor follows its consumers
//  2. Walk that order, calling each operation's Backward with the summed
//     gradient of its output
//  3. Sum contributions when a tensor feeds several operations
//  4. Add the final gradient of each leaf into its slot
func (t *Tensor) Backward() error {
	if !t.shape.IsScalar() {
		return fmt.Errorf("%w: got shape %v", ErrNonScalarBackward, t.shape)
	}
	if !t.requiresGrad {
		return ErrNoGraph
	}

	order := topoOrder(t)

	grads := make(map[*Tensor][]float64, len(order))
	grads[t] = []float64{1}

	for _, node := range order {
		g, ok := grads[node]
		if !ok {
			continue
		}
		if node.gradFn == nil {
			node.accumulateGrad(g)
			continue
		}
		inputGrads := node.gradFn.Backward(g)
		for j, in := range node.gradFn.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil || in == nil || !in.requiresGrad {
				continue
			}
			if len(inputGrads[j]) != len(in.data) {
				return fmt.Errorf("tensor: %s produced gradient of length %d for input %d with %d elements",
					node.gradFn.Name(), len(inputGrads[j]), j, len(in.data))
			}
			if existing, seen := grads[in]; seen {
				for k := range existing {
					existing[k] += inputGrads[j][k]
				}
			} else {
				grads[in] = append([]float64(nil), inputGrads[j]...)
			}
		}
	}

	return nil
}

// topoOrder returns the tensors reachable from root that require grad,
// ordered so that every tensor appears after all tensors computed from it.
func topoOrder(root *Tensor) []*Tensor {
	visited := make(map[*Tensor]bool)
	var post []*Tensor

	type frame struct {
		node *Tensor
		next int
	}
	stack := []frame{{node: root}}
	visited[root] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		var inputs []*Tensor
		if top.node.gradFn != nil {
			inputs = top.node.gradFn.Inputs()
		}
		if top.next < len(inputs) {
			in := inputs[top.next]
			top.next++
			if in != nil && in.requiresGrad && !visited[in] {
				visited[in] = true
				stack = append(stack, frame{node: in})
			}
			continue
		}
		post = append(post, top.node)
		stack = stack[:len(stack)-1]
	}

	// Reverse post-order: consumers before producers.
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
