// Package collision implements penalty colliders for rigid obstacles.
//
// Every collider satisfies [dynamo.Collider]. A [Plane] corrects the node
// position onto its surface and adds a penalty force; a [Sphere] and a [Mesh]
// only add force. Obstacle poses are given as a [Transform] and can change
// between ticks through SetPose.
package collision
