// Package span implements the node span rope: the flattened, composable
// sequence of display node ids produced by building one view node.
//
// Spans compose associatively — child spans concatenate into their
// parent's span — and never alias: a display node id occupies exactly one
// span slot at a time. Composition is structural and lazy; sub-spans are
// combined by reference and only flattened into a linear id sequence at
// the final attach step.
package span
