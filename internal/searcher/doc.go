// Package searcher implements the bounded candidate queue used for top-k selection.
package searcher
