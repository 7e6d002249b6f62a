// Package services contains the core business logic of corpora.
// Services implement the driving port interfaces and depend only on
// driven port interfaces, never on concrete adapters.
package services
