// Package boardtests contains the board smoke suite and the test API it is written against.
//
// Runner infrastructure that is not specific to boards, such as test contexts, filtering and
// result reporting, is in the lower-level framework package.
package boardtests
