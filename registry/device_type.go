package registry

// DeviceType tags what kind of smart device is plugged into a port. The
// values mirror the vendor's device-class enumeration so a bus snapshot
// can be stored without translation.
type DeviceType uint8

// All device types the registry understands.
const (
	TypeNone     DeviceType = 0
	TypeMotor    DeviceType = 2
	TypeLED      DeviceType = 3
	TypeRotation DeviceType = 4
	TypeIMU      DeviceType = 6
	TypeDistance DeviceType = 7
	TypeRadio    DeviceType = 8
	TypeVision   DeviceType = 11
	TypeADI      DeviceType = 12
	TypeOptical  DeviceType = 16
	TypeGPS      DeviceType = 20
	TypeSerial   DeviceType = 129
)

func (t DeviceType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeMotor:
		return "motor"
	case TypeLED:
		return "led"
	case TypeRotation:
		return "rotation"
	case TypeIMU:
		return "imu"
	case TypeDistance:
		return "distance"
	case TypeRadio:
		return "radio"
	case TypeVision:
		return "vision"
	case TypeADI:
		return "adi"
	case TypeOptical:
		return "optical"
	case TypeGPS:
		return "gps"
	case TypeSerial:
		return "serial"
	}
	return "unknown"
}
