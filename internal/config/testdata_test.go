package config

const validDescriptor = `cluster:
  name: demo
  endpoint: https://10.12.1.10:6443
  networking:
    private-node-cidr: 10.12.0.0/16
    subnet-virtual: 10.12.1.0/24
    subnet-metal: 10.12.2.0/24
talos:
  version: v1.10.3
  schematicId: null          # set after 'schematic'
hetzner:
  hcloud-zone: eu-central
  hcloud-network-id: null    # set after 'net'
  hcloud-image-id: null      # set after 'image'
  robot-vswitch-id: 71234
  robot-vlan-tag: 4000
  cp-lb-ip: null             # set after 'lb'
  cp-server-type: cx22
  cp-datacenter: nbg1-dc3
`
