/*
go-formfit compares a live subject's body pose against the reference pose of
an exercise and places the reference as an overlay that tracks the subject.

Each captured frame flows through a Session: the pose detector returns a 15
joint skeleton, the alignment engine (package align) computes where the
reference overlay is centered, and the scoring engine (package score) rates
how closely every joint and limb matches.  The result is published as a
Frame that renderers, the web server and the UI read without blocking the
capture loop.

Reference poses are detected once per exercise from the exercise's image and
cached by a reference.Repository shared across sessions.

See example code and usage in the example subdirectory.
*/
package formfit
