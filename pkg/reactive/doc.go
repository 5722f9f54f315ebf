// Package reactive implements runtime instances: entities and relations that
// carry a dynamic set of observable property cells plus component and
// behaviour memberships.
//
// A [Property] stores a value and pushes values to subscribers registered
// under caller-chosen handles. Set stores and propagates, SetNoPropagate only
// stores, Send only propagates and Tick propagates the stored value again.
package reactive
