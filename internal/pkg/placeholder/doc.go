// Package placeholder renders campaign templates by literal token
// substitution.
//
// A template is plain HTML carrying zero or more tokens of the shape
// <!--key-->. There is no expression language and no escaping; whatever value
// the recipient record holds for key is spliced in as-is.
package placeholder
