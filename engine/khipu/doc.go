/*
Package khipu implements the node lists produced by the typesetter.

A khipu is a list of knots: glyphs, glues, kerns, penalties, math
markers, boxes and paragraph ends. The name is taken from the knotted
cords the Inca used for recording information.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package khipu
