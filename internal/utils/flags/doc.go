// Package flags provides pflag helpers shared by metapr commands: yes/no
// toggle flags and usage strings that list the accepted choices.
package flags
