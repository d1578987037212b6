// Package merge provides key-wise map merging with last-wins override
// semantics. It implements the override cascade used at every level of the
// image configuration (image, tag, variant) for both versions and variables.
package merge
