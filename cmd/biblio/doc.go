// Command biblio is the command line interface to a bibliod server. It signs
// users in, manages library tasks through the workflow endpoints, and runs
// document OCR with a persistent review buffer.
package main
