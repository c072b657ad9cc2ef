// Package mock provides test doubles for deepseek interfaces using function
// fields.
package mock
