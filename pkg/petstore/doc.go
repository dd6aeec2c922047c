// Package petstore es el SDK cliente del catálogo de mascotas.
//
// Mantiene un cache local normalizado (una entrada por identidad de
// entidad) que reconcilia respuestas del server con escrituras
// optimistas: CreatePet inserta la mascota en las listas cacheadas
// antes de tocar la red, la sustituye en la misma posición cuando el
// server confirma, y la revierte si la mutación falla. Las vistas
// pueden observar resultados por query key en tres estados
// (loading/error/data) vía Watch.
package petstore
