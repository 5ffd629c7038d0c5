// Package traits wraps a vision model as a creative-trait classifier.
//
// A Framework lists trait categories: selectable ones with a closed option
// set and freetext ones (headline, CTA copy). The classifier renders a
// prompt from the framework, sends it with the image to the model, pulls
// the first JSON object out of the reply and validates it against the
// framework. The model is an untrusted oracle; nothing it returns reaches
// the catalog without passing validation.
package traits
