// Package services defines the error taxonomy shared by the toolkit's
// components: sentinel markers for classification plus a Wrap helper that
// attaches component and operation context to failures.
package services
