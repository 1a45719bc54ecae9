// Package mock provides test doubles for the ai capability interfaces.
package mock
