// Package conv provides bounds-checked integer conversions for values that
// cross a fixed-width boundary, such as record ids and snapshot headers.
package conv
