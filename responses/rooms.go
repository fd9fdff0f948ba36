package responses

// RoomHostLeftMessage is sent to the guest right before its forced close
// when the host's connection drops.
const RoomHostLeftMessage = "Host left the room"

// Room lifecycle errors. The websocket handler reports these once to the
// requester as an error message; none of them mutate registry state.

type RoomExistsError struct {
	Code string
}

func (e RoomExistsError) Error() string {
	return "Room already exists"
}

func (RoomExistsError) StatusCode() int {
	return 409
}

type RoomNotFoundError struct {
	Code string
}

func (e RoomNotFoundError) Error() string {
	return "Room not found"
}

func (RoomNotFoundError) StatusCode() int {
	return 404
}

type RoomFullError struct {
	Code string
}

func (e RoomFullError) Error() string {
	return "Room is full"
}

func (RoomFullError) StatusCode() int {
	return 409
}
